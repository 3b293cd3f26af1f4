// Package protocol owns the Wayland wire contract used by compcheck.
//
// Ownership boundary:
// - well-known object ids and opcodes
// - error taxonomy shared by wire, args and session
//
// Only the registry enumeration subset is modelled: wl_display.sync,
// wl_display.get_registry and wl_registry.global.
package protocol
