// Package catalog holds the persisted shapes of the training-materials catalog
// and the pure value objects shared by the read and write paths.
package catalog
