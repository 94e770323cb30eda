// cmd/acctregistry/main.go

// 本程式提供以 ID 排序的帳戶登錄簿：新增、刪除、付款、中位數與合併。
// 實際的指令樹（serve / demo / version）定義於 internal/cli。

package main

import (
	"os"

	"acctregistry/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// cobra 已輸出錯誤訊息
		os.Exit(1)
	}
}
