/*
Package utils provides the decorators wrapped around the runtime: request
logging, panic recovery and a savepoint that isolates the writes of a single
transaction.
*/
package utils
