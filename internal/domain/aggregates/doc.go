// Package aggregates defines the catalog's write boundaries and the error
// taxonomy shared by every layer above the store.
//
// Contracts here name no persistence or transport types.
package aggregates
