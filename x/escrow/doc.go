/*
Package escrow implements token swaps between two parties.

A maker opens an escrow by depositing an amount of one mint into a vault
controlled by the escrow program and stating how much of another mint they
want in exchange. Any taker can settle the escrow by paying the requested
amount, receiving the deposit in return. Until then the maker can cancel the
escrow and get the deposit back.

The escrow record lives in an account at a program derived address of the
maker and a bump. The vault is the associated token account of the record
for the deposited mint, so the program signs for it with the record seeds.

Settlement is atomic: a failing transfer aborts the whole transaction and
nothing is changed.
*/
package escrow
