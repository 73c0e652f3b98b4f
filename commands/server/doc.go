/*
Package server holds the daemon subcommands shared by tokenvm
applications: filling app_state into a tendermint genesis, serving the
ABCI socket, validating genesis files, and the debugging helpers that
extract a block from the blockstore and replay it against the iavl state.
*/
package server
