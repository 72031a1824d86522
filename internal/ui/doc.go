// package ui implements the interactive terminal frontend: publication
// browsing with search and sorting, login, uploads, and deletion, all
// driven through the core session/collection/mutation layers.
package ui
