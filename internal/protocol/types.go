package protocol

// Object ids allocated by the client for the enumeration handshake.
const (
	DisplayObject  uint32 = 1
	RegistryObject uint32 = 2
	CallbackObject uint32 = 3
)

// wl_display request opcodes.
const (
	DisplaySync        uint16 = 0
	DisplayGetRegistry uint16 = 1
)

// wl_registry event opcodes.
const (
	RegistryGlobal uint16 = 0
)

// UnknownPeer labels an endpoint whose owning process could not be resolved.
const UnknownPeer = "Unknown"
