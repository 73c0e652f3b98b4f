/*
Package whitelist implements a transfer hook that lets only whitelisted
owners move tokens of a mint.

The token program calls the hook after every checked transfer of a mint
configured with it. The hook looks up the whitelist record of the transfer
authority, passed as the first extra account, and rejects the transfer unless
the record exists and is enabled. Records are managed by the admin named in
the package configuration.
*/
package whitelist
