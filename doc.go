/*

Package tokenvm defines interfaces used throughout the chain, such as: storage,
accounts, instructions, transactions, programs and handlers.
It also contains helpers to work with context and abci.
Look into this package to get an brief overview of design decisions made
around interfaces and program building blocks.

*/

package tokenvm
