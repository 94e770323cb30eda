// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 呼叫端以 errors.Is 比對；HTTP handler 會轉換成適當的狀態碼。

package bank

import "errors"

var (
	// ErrNotFound 代表帳戶不存在。
	// 對應 HTTP 狀態碼 404 Not Found。
	ErrNotFound = errors.New("account not found")

	// ErrBadAmount 代表金額非法（負數、NaN 或無限大）。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrBadAmount = errors.New("amount must be >= 0")

	// ErrInsufficient 代表付款人資金不足。
	// 對應 HTTP 狀態碼 409 Conflict。
	ErrInsufficient = errors.New("insufficient funds")

	// ErrSameAccount 代表合併帳戶時兩個 ID 相同。
	ErrSameAccount = errors.New("accounts are the same")

	// ErrNotDuplicate 代表兩個帳戶的姓名、地址或 SSN 不一致，不能合併。
	// 對應 HTTP 狀態碼 422 Unprocessable Entity。
	ErrNotDuplicate = errors.New("the accounts are not duplicates")

	// ErrDuplicateID 代表欲插入的 ID 已被現存帳戶使用。
	// 對應 HTTP 狀態碼 409 Conflict。
	ErrDuplicateID = errors.New("account id already in use")

	// ErrInvalidSnapshot 代表快照內容無法還原（欄位不合法或 ID 重複）。
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
