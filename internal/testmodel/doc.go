// Package testmodel is a small web shop object model used as clone fixture by
// tests, examples and the clonebench command. Its graphs have cycles
// (customers and their orders), shared instances (products referenced by many
// order lines, slices sharing a backing array) and every container kind the
// cloner handles.
package testmodel
