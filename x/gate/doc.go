/*
Package gate implements a token vault with a gated withdrawal limit.

An admin opens a vault for one mint and grants users a withdrawal limit
through a per-user whitelist record. Users deposit into the vault and
withdraw as long as their remaining limit allows it. A deposit made after the
reset window elapsed since the last withdrawal resets the limit. The admin
can mint to users and slash their tokens through the mint's permanent
delegate.
*/
package gate
