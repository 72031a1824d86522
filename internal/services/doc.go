// package services contains the HTTP layer for the publication repository
// API: a uniform request gateway plus typed endpoint clients for auth and
// publications.
package services
