// package models defines the data model for the publication repository client
package models
