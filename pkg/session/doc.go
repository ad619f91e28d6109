/*
Package session serializes work on a single user's phrase list.

A Manager hands out one lock per user ID. Locks are reference counted and
dropped once no caller holds or waits on them. With a ports.Locker the
lock also spans engine replicas sharing the same store.
*/
package session
