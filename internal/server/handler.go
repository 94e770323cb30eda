// internal/server/handler.go
//
// Package server
// ─────────────────────────────────────────────
// 提供 HTTP RESTful 介面，作為 bank 模組的應用層。
// 每個 handler 僅負責：
//  1. 接收與驗證 HTTP 請求
//  2. 呼叫 bank 層執行商業邏輯
//  3. 回傳標準化 JSON 回應
//  4. 成功變更狀態後呼叫 s.persist()，將該登錄簿的快照寫入 Store，並送出事件
package server

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"acctregistry/internal/bank"
	"acctregistry/internal/events"
	"acctregistry/internal/logging"
	"acctregistry/internal/storage"
)

// Server 持有多個以標籤區分的登錄簿：
// - store：持久化後端，每次成功變更後保存該登錄簿。
// - events：事件發佈者，失敗只記錄。
type Server struct {
	mu         sync.RWMutex
	registries map[string]*bank.Registry
	store      storage.Store
	events     events.Publisher
}

// NewServer 建立 HTTP 伺服器；store 與 pub 可為 nil。
func NewServer(store storage.Store, pub events.Publisher) *Server {
	if store == nil {
		store = storage.NewMemStore()
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Server{
		registries: make(map[string]*bank.Registry),
		store:      store,
		events:     pub,
	}
}

// AddRegistry 登記一個登錄簿；標籤已存在時回傳錯誤。
func (s *Server) AddRegistry(r *bank.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registries[r.Label()]; ok {
		return fmt.Errorf("registry %q already exists", r.Label())
	}
	s.registries[r.Label()] = r
	return nil
}

// Registry 依標籤取得登錄簿。
func (s *Server) Registry(label string) (*bank.Registry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.registries[label]
	return r, ok
}

// Labels 回傳排序後的所有標籤。
func (s *Server) Labels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.registries))
	for l := range s.registries {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

// Restore 從 store 載入所有已保存的登錄簿。
func (s *Server) Restore(ctx context.Context) error {
	labels, err := s.store.Labels(ctx)
	if err != nil {
		return err
	}
	for _, label := range labels {
		snap, err := s.store.Load(ctx, label)
		if err != nil {
			return err
		}
		r, err := bank.FromSnapshot(snap)
		if err != nil {
			return fmt.Errorf("restore %q: %w", label, err)
		}
		if err := s.AddRegistry(r); err != nil {
			return err
		}
		logging.Infof("restored registry %q (%d accounts)", label, r.Len())
	}
	return nil
}

// persist 保存快照並送出事件。兩者失敗都只記錄，不影響已完成的變更。
func (s *Server) persist(ctx context.Context, r *bank.Registry, eventType string, data any) {
	if err := s.store.Save(ctx, r.Snapshot()); err != nil {
		logging.Errorf("persist %q: %v", r.Label(), err)
	}
	if err := s.events.Publish(ctx, r.Label(), eventType, data); err != nil {
		logging.Warnf("publish %s for %q: %v", eventType, r.Label(), err)
	}
}

// registry 取出路徑中的 :label，不存在時直接回 404。
func (s *Server) registry(c *gin.Context) (*bank.Registry, bool) {
	r, ok := s.Registry(c.Param("label"))
	if !ok {
		respondWithError(c, http.StatusNotFound, "registry not found")
		return nil, false
	}
	return r, true
}

func accountID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		respondWithError(c, http.StatusBadRequest, "invalid account id")
		return 0, false
	}
	return id, true
}

type createRegistryRequest struct {
	Label string `json:"label" validate:"required,max=128"`
}

type registrySummary struct {
	Label    string `json:"label"`
	Accounts int    `json:"accounts"`
}

type createAccountRequest struct {
	ID      int     `json:"id" validate:"gte=0"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	SSN     string  `json:"ssn"`
	Funds   float64 `json:"funds" validate:"gte=0"`
}

type paymentRequest struct {
	Payer  int     `json:"payer" validate:"required"`
	Payee  int     `json:"payee" validate:"required"`
	Amount float64 `json:"amount"`
}

type mergeAccountsRequest struct {
	ID1 int `json:"id1" validate:"required"`
	ID2 int `json:"id2" validate:"required"`
}

type mergeRegistriesRequest struct {
	A    string `json:"a" validate:"required"`
	B    string `json:"b" validate:"required"`
	Into string `json:"into" validate:"required,max=128"`
}

// bind 解析並驗證 JSON；失敗時已寫出 400。
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if verrs := validateRequest(req); verrs != nil {
		respondWithValidationError(c, verrs)
		return false
	}
	return true
}

// listRegistries 處理 GET /registries。
func (s *Server) listRegistries(c *gin.Context) {
	out := make([]registrySummary, 0)
	for _, label := range s.Labels() {
		if r, ok := s.Registry(label); ok {
			out = append(out, registrySummary{Label: label, Accounts: r.Len()})
		}
	}
	c.JSON(http.StatusOK, out)
}

// createRegistry 處理 POST /registries。
func (s *Server) createRegistry(c *gin.Context) {
	var req createRegistryRequest
	if !bind(c, &req) {
		return
	}
	r := bank.NewRegistry(req.Label)
	if err := s.AddRegistry(r); err != nil {
		respondWithError(c, http.StatusConflict, err.Error())
		return
	}
	c.JSON(http.StatusCreated, registrySummary{Label: r.Label()})
	s.persist(c.Request.Context(), r, events.RegistryCreated, nil)
}

// listAccounts 處理 GET /registries/:label/accounts，依 ID 排序。
func (s *Server) listAccounts(c *gin.Context) {
	r, ok := s.registry(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r.SortedAccounts())
}

// createAccount 處理 POST /registries/:label/accounts；id 省略或為 0 時自動配發。
func (s *Server) createAccount(c *gin.Context) {
	r, ok := s.registry(c)
	if !ok {
		return
	}
	var req createAccountRequest
	if !bind(c, &req) {
		return
	}
	var (
		a   bank.Account
		err error
	)
	if req.ID > 0 {
		a, err = r.AddUserWithID(req.ID, req.Name, req.Address, req.SSN, req.Funds)
	} else {
		a, err = r.AddUser(req.Name, req.Address, req.SSN, req.Funds)
	}
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
	s.persist(c.Request.Context(), r, events.AccountCreated, events.AccountCreatedEvent{
		AccountID: a.ID, Name: a.Name, Funds: a.Funds,
	})
}

// getAccount 處理 GET /registries/:label/accounts/:id。
func (s *Server) getAccount(c *gin.Context) {
	r, ok := s.registry(c)
	if !ok {
		return
	}
	id, ok := accountID(c)
	if !ok {
		return
	}
	a, found := r.FindUserByID(id)
	if !found {
		writeErr(c, bank.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, a)
}

// deleteAccount 處理 DELETE /registries/:label/accounts/:id。
func (s *Server) deleteAccount(c *gin.Context) {
	r, ok := s.registry(c)
	if !ok {
		return
	}
	id, ok := accountID(c)
	if !ok {
		return
	}
	if !r.DeleteUser(id) {
		writeErr(c, bank.ErrNotFound)
		return
	}
	c.Status(http.StatusNoContent)
	s.persist(c.Request.Context(), r, events.AccountDeleted, events.AccountDeletedEvent{AccountID: id})
}

// pay 處理 POST /registries/:label/payments。
func (s *Server) pay(c *gin.Context) {
	r, ok := s.registry(c)
	if !ok {
		return
	}
	var req paymentRequest
	if !bind(c, &req) {
		return
	}
	if err := r.Pay(req.Payer, req.Payee, req.Amount); err != nil {
		writeErr(c, err)
		return
	}
	payer, _ := r.FindUserByID(req.Payer)
	payee, _ := r.FindUserByID(req.Payee)
	c.JSON(http.StatusOK, gin.H{
		"message": "payment success",
		"payer":   payer,
		"payee":   payee,
	})
	s.persist(c.Request.Context(), r, events.PaymentCompleted, events.PaymentCompletedEvent{
		PayerID: req.Payer, PayeeID: req.Payee, Amount: req.Amount,
	})
}

// median 處理 GET /registries/:label/median；空登錄簿回 204。
func (s *Server) median(c *gin.Context) {
	r, ok := s.registry(c)
	if !ok {
		return
	}
	m, ok := r.MedianID()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"median": m})
}

// mergeAccounts 處理 POST /registries/:label/merge-accounts。
func (s *Server) mergeAccounts(c *gin.Context) {
	r, ok := s.registry(c)
	if !ok {
		return
	}
	var req mergeAccountsRequest
	if !bind(c, &req) {
		return
	}
	id, err := r.MergeAccounts(req.ID1, req.ID2)
	if err != nil {
		writeErr(c, err)
		return
	}
	kept, _ := r.FindUserByID(id)
	c.JSON(http.StatusOK, kept)
	s.persist(c.Request.Context(), r, events.AccountsMerged, events.AccountsMergedEvent{
		KeptID: id, RemovedID: req.ID2, Funds: kept.Funds,
	})
}

// mergeRegistries 處理 POST /merges：以 a、b 建立新的登錄簿 into。
// 合併結果的 ID 分配器維持初始狀態（next=1、無已釋放 ID），
// 在呼叫 POST /registries/:label/rebuild-ids 之前，自動配發 ID 的新增會回 409。
func (s *Server) mergeRegistries(c *gin.Context) {
	var req mergeRegistriesRequest
	if !bind(c, &req) {
		return
	}
	a, okA := s.Registry(req.A)
	b, okB := s.Registry(req.B)
	if !okA || !okB {
		respondWithError(c, http.StatusNotFound, "registry not found")
		return
	}
	merged := bank.Merge(req.Into, a, b)
	if err := s.AddRegistry(merged); err != nil {
		respondWithError(c, http.StatusConflict, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"label":    merged.Label(),
		"accounts": merged.SortedAccounts(),
	})
	s.persist(c.Request.Context(), merged, events.RegistriesMerged, events.RegistriesMergedEvent{
		Sources: []string{req.A, req.B}, Accounts: merged.Len(),
	})
}

type allocatorState struct {
	NextID   int   `json:"nextId"`
	FreedIDs []int `json:"freedIds"`
}

// rebuildIDs 處理 POST /registries/:label/rebuild-ids：
// 依現有帳戶重算分配器（next = 最大 ID + 1，空缺列為已釋放）。
func (s *Server) rebuildIDs(c *gin.Context) {
	r, ok := s.registry(c)
	if !ok {
		return
	}
	r.RebuildAllocator()
	state := allocatorState{NextID: r.NextFreshID(), FreedIDs: r.FreedIDs()}
	c.JSON(http.StatusOK, state)
	s.persist(c.Request.Context(), r, events.IDsRebuilt, events.IDsRebuiltEvent{
		NextID: state.NextID, FreedIDs: state.FreedIDs,
	})
}

// health 提供健康檢查端點：GET /health。
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
