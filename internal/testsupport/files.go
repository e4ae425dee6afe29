package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// mp4Header is the minimal ftyp box prefix that container sniffing
// identifies as video/mp4.
var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
	'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
	'i', 's', 'o', 'm', 'm', 'p', '4', '1',
}

// MP4Bytes returns a byte slice of the requested size whose prefix sniffs
// as an MP4 container. Sizes smaller than the header are padded up to it.
func MP4Bytes(size int) []byte {
	if size < len(mp4Header) {
		size = len(mp4Header)
	}
	buf := make([]byte, size)
	copy(buf, mp4Header)
	for i := len(mp4Header); i < size; i++ {
		buf[i] = 0x42
	}
	return buf
}

// WriteMP4 writes a sniffable MP4 payload of the requested size to path.
func WriteMP4(t testing.TB, path string, size int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, MP4Bytes(size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
