// Package google provides OAuth2 credential handling for the Gmail API.
//
// Credentials come from two places: the browser-session flow (authorization
// code exchange via Flow) and the environment (headless operation with a
// pre-provisioned refresh token). Both produce a CredentialSet, which
// delegates token refresh to golang.org/x/oauth2.
package google
