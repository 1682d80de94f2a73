//go:build linux

package osthread

import "golang.org/x/sys/unix"

// ID は、呼び出し元のゴルーチンが現在実行されているOSスレッドのカーネルTIDを返します。
// ゴルーチンはスレッド間を移動し得るため、runtime.LockOSThread していない場合は観測時点の値です。
func ID() int {
	return unix.Gettid()
}
