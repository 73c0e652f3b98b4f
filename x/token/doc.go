/*
Package token implements fungible tokens.

A mint describes an asset and its supply. Token accounts hold a balance of a
single mint for a single owner. A mint may name a transfer hook program that
is invoked after every checked transfer, and a permanent delegate that may
move or burn any balance of the mint.
*/
package token
