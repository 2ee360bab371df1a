/*
Package session coordinates access to stored trials.

Measure passes load a trial, modify its measures and save it back. The Manager runs
that cycle under a per-key lock, optionally backed by a distributed locker when several
analysis workers share one store.
*/
package session
