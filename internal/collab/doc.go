// Package collab declares the interfaces of the external collaborators the
// engine and the business screens talk to: the identity/user-profile store,
// the job broker, and the history log.
//
// The engine knows nothing about the schema behind these interfaces; it
// only needs the generic shapes. Concrete implementations live in the
// users, jobs and history packages, and anything else (a SQL store, a
// remote broker) can be swapped in behind the same contracts.
//
// Every blocking call takes a context; implementations own their timeouts.
package collab
