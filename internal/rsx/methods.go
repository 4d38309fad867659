package rsx

// Method codes for RSXProcessor.process. Only MethodClearColor's value
// is fixed by hardware convention; the rest are assigned adjacent
// codes in the same method-register block.
const (
	MethodClearColor    uint16 = 0x0A0C
	MethodViewportOrigin uint16 = 0x0A10
	MethodViewportExtent uint16 = 0x0A14
	MethodScissorOrigin  uint16 = 0x0A18
	MethodScissorExtent  uint16 = 0x0A1C
	MethodBlendFunc      uint16 = 0x0A20
	MethodBlendEquation  uint16 = 0x0A24
	MethodCullFace       uint16 = 0x0A28
	MethodBeginEnd       uint16 = 0x0A2C
	MethodWaitForIdle    uint16 = 0x0A30
	MethodNotify         uint16 = 0x0A34
)

// cullFaceDisable is the special CULL_FACE data value that disables
// culling rather than naming a winding/face mode.
const cullFaceDisable uint32 = 0x0404
