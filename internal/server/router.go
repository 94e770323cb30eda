// internal/server/router.go
//
// 本檔負責 HTTP 路由註冊。
//   - handler.go 定義「如何處理請求」
//   - router.go 定義「請求如何被導向」
//   - cli 的 serve 指令組裝整體應用（注入 Store、Publisher）
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Router 建立並回傳整個 HTTP 處理鏈。
// 所有端點掛在 /api/v1 下，同時保留根路徑方便本地開發。
func (s *Server) Router() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	s.routes(r.Group("/api/v1"))
	s.routes(r.Group(""))
	return r
}

func (s *Server) routes(g *gin.RouterGroup) {
	g.GET("/health", s.health)

	// 登錄簿：
	//   - GET  /registries
	//   - POST /registries
	//   - POST /merges
	g.GET("/registries", s.listRegistries)
	g.POST("/registries", s.createRegistry)
	g.POST("/merges", s.mergeRegistries)

	// 帳戶操作：
	//   - GET    /registries/:label/accounts
	//   - POST   /registries/:label/accounts
	//   - GET    /registries/:label/accounts/:id
	//   - DELETE /registries/:label/accounts/:id
	//   - POST   /registries/:label/payments
	//   - GET    /registries/:label/median
	//   - POST   /registries/:label/merge-accounts
	//   - POST   /registries/:label/rebuild-ids
	reg := g.Group("/registries/:label")
	{
		reg.GET("/accounts", s.listAccounts)
		reg.POST("/accounts", s.createAccount)
		reg.GET("/accounts/:id", s.getAccount)
		reg.DELETE("/accounts/:id", s.deleteAccount)
		reg.POST("/payments", s.pay)
		reg.GET("/median", s.median)
		reg.POST("/merge-accounts", s.mergeAccounts)
		reg.POST("/rebuild-ids", s.rebuildIDs)
	}
}
