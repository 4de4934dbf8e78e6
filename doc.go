// Package turing implements a deterministic single-tape and multi-tape
// Turing machine interpreter: rules map a (state, read) pair to a
// (next state, write, head delta), where the read side may be the ANY
// wildcard and the write side may be KEEP (leave the scanned cell
// untouched). Both machine kinds clone their rule table at construction,
// so a caller mutating the table afterwards cannot affect a later run.
package turing
