package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	// NanoidSize is the length of record ids and object key names.
	NanoidSize = 32

	// SessionIDSize is longer because the session id is the only secret the browser holds.
	SessionIDSize = 48
)

func NanoID() string {
	return NanoIDSize(NanoidSize)
}

func SessionID() string {
	return NanoIDSize(SessionIDSize)
}

func NanoIDSize(size int) string {
	if size <= 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}
