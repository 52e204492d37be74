package bus

// RAM is a flat byte array device. Offsets wrap modulo its size, which
// mirrors how main memory repeats across its address window.
type RAM struct {
	data     []byte
	readOnly bool
}

// NewRAM creates a zero-filled RAM of size bytes.
func NewRAM(size int) *RAM {
	return &RAM{data: make([]byte, size)}
}

// NewROM creates a read-only device holding a copy of image. Stores to a
// ROM are dropped.
func NewROM(image []byte) *RAM {
	data := make([]byte, len(image))
	copy(data, image)
	return &RAM{data: data, readOnly: true}
}

// Size returns the size of the device in bytes.
func (r *RAM) Size() int {
	return len(r.data)
}

// Bytes exposes the backing array.
func (r *RAM) Bytes() []byte {
	return r.data
}

// LoadImage copies image into the device at offset, ignoring the read-only
// flag. It is used by program loaders.
func (r *RAM) LoadImage(offset uint32, image []byte) {
	for i, b := range image {
		r.data[(offset+uint32(i))%uint32(len(r.data))] = b
	}
}

// Load implements Bus.
func (r *RAM) Load(addr uint32, w Width) (uint32, error) {
	off := addr % uint32(len(r.data))
	if off+uint32(w) > uint32(len(r.data)) {
		return 0, &FaultError{Addr: addr, Width: w}
	}
	return Unpack(r.data, off, w), nil
}

// Store implements Bus.
func (r *RAM) Store(addr uint32, w Width, value uint32) error {
	if r.readOnly {
		return nil
	}
	off := addr % uint32(len(r.data))
	if off+uint32(w) > uint32(len(r.data)) {
		return &FaultError{Addr: addr, Width: w, Write: true}
	}
	Pack(r.data, off, w, value)
	return nil
}
