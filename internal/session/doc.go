// package session owns the authentication token, its persistence across
// runs, and the derived user profile. It is the single writer of the token;
// every other component reads through it on each request.
package session
