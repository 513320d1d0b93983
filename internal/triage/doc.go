// Package triage classifies mail messages by urgency and produces a daily
// digest using an OpenAI chat-completion endpoint.
//
// Remote failures never propagate: classification falls back to Low Priority
// and summarization to a fixed string, so one failing call can not break a
// page render. The completion client is constructed once at startup and
// injected, never held as a package global.
package triage
