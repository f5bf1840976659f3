//go:build wasm

package scope

// wasm runs a single goroutine at a time and goid is unavailable,
// so every goroutine shares one slot.
func getGID() int64 {
	return 0
}
