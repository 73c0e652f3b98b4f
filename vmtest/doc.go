/*
Package vmtest provides an in-memory chain with the builtin programs
registered and helpers to set up mints and token accounts in tests.
*/
package vmtest
