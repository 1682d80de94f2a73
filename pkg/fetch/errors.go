package fetch

import (
	"errors"
	"fmt"
)

// NetworkError は、接続失敗・タイムアウト・不正なレスポンスなど、
// HTTPクライアント機能から返されたあらゆる失敗を表す唯一のエラー種別です。
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("ネットワークエラー (URL: %s): %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError は与えられたエラーが NetworkError であるかを判断します。
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr *NetworkError
	return errors.As(err, &netErr)
}
