//go:build !linux

package osthread

// ID は Linux 以外ではスレッドIDを取得できないため 0 を返します。
func ID() int {
	return 0
}
