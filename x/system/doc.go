/*
Package system implements the program owning every account that no other
program claimed.

It creates accounts, hands them over to other programs and moves lamports
between wallets. Instruction data starts with a little endian u32 tag.
*/
package system
