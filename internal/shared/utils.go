// Package shared holds small helpers used across the client.
package shared

// WipeByteArray overwrites b with zeros. Use it on passwords once they are
// no longer needed. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
