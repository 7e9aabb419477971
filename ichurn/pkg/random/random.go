package random

import "crypto/rand"

var (
	LatinAndNumbers = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")
	Lower           = []byte("abcdefghijklmnopqrstuvwxyz")
)

func Bytes(count int) []byte {
	res := make([]byte, count)
	_, err := rand.Read(res)
	if err != nil {
		panic(err)
	}
	return res
}

func String(count int, chars []byte) string {
	res := make([]byte, count)
	lenc := byte(len(chars))
	for i, b := range Bytes(count) {
		res[i] = chars[b%lenc]
	}
	return string(res)
}

// Names returns count distinct author names such that no name is a substring of another.
func Names(count int) []string {
	seen := map[string]bool{}
	var res []string
	for len(res) < count {
		n := "Dev" + String(1, []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ")) + String(7, Lower)
		if seen[n] {
			continue
		}
		seen[n] = true
		res = append(res, n)
	}
	return res
}
