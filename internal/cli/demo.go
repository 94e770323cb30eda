// internal/cli/demo.go
//
// demo 指令依序執行示範情境，輸出到 stdout：
//  1. 以指定 ID 亂序新增，串列依 ID 排序
//  2. 刪除後新增會重用最小的已釋放 ID；指定 ID 直接使用
//  3. 付款
//  4. 奇數與偶數筆的中位數 ID
//  5. 合併重複帳戶
//  6. 合併兩個登錄簿並排序輸出
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"acctregistry/internal/bank"
)

// NewDemoCommand 建立 demo 子指令。
func NewDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the registry walkthrough scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunDemo(cmd.OutOrStdout())
		},
	}
}

type seed struct {
	id                 int
	name, address, ssn string
	funds              float64
}

func addAll(r *bank.Registry, seeds ...seed) error {
	for _, s := range seeds {
		var err error
		if s.id > 0 {
			_, err = r.AddUserWithID(s.id, s.name, s.address, s.ssn, s.funds)
		} else {
			_, err = r.AddUser(s.name, s.address, s.ssn, s.funds)
		}
		if err != nil {
			return fmt.Errorf("add %s: %w", s.name, err)
		}
	}
	return nil
}

// RunDemo 執行所有情境；任一情境失敗即停止並回傳錯誤。
func RunDemo(w io.Writer) error {
	p := message.NewPrinter(language.English)
	scenarios := []struct {
		title string
		run   func(io.Writer, *message.Printer) error
	}{
		{"Sorted insertion", demoSorted},
		{"ID assignment", demoIDAssignment},
		{"Payment", demoPayment},
		{"Median ID", demoMedian},
		{"Merge duplicate accounts", demoMergeAccounts},
		{"Merge registries", demoMergeRegistries},
	}
	for i, s := range scenarios {
		p.Fprintf(w, "\n--- %d. %s ---\n\n", i+1, s.title)
		if err := s.run(w, p); err != nil {
			return err
		}
	}
	return nil
}

func demoSorted(w io.Writer, _ *message.Printer) error {
	r := bank.NewRegistry("Orange County")
	if err := addAll(r,
		seed{3, "Makki", "240 Kearny Ln", "250-00-1234", 5000},
		seed{2, "John", "270 Oakwood St", "124-99-7576", 200},
		seed{1, "Jimmy", "120 Jamboree Rd", "999-11-2234", 1500},
		seed{5, "Ben", "459 Cedar Ln", "750-51-9254", 3000},
		seed{4, "Sara", "2300 Kearny Ct", "459-33-6560", 10000},
	); err != nil {
		return err
	}
	return r.PrintUsersInSortedOrder(w)
}

func demoIDAssignment(w io.Writer, p *message.Printer) error {
	r := bank.NewRegistry("Orange County")
	if err := addAll(r,
		seed{0, "Makki", "240 Kearny Ln", "250-00-1234", 5000},
		seed{0, "John", "270 Oakwood St", "124-99-7576", 200},
		seed{0, "Jimmy", "120 Jamboree Rd", "999-11-2234", 1500},
		seed{4, "Ben", "459 Cedar Ln", "750-51-9254", 3000},
	); err != nil {
		return err
	}
	r.DeleteUser(2)

	sara, err := r.AddUser("Sara", "2300 Cogenbury Ct", "459-33-6560", 10000)
	if err != nil {
		return err
	}
	jess, err := r.AddUserWithID(5, "Jess", "120 Tysons Blvd", "750-88-8870", 200)
	if err != nil {
		return err
	}
	for _, a := range []bank.Account{sara, jess} {
		p.Fprintf(w, "New user added with ID: %d (Name: %s, Address: %s, SSN: %s, Funds: $%.2f)\n",
			a.ID, a.Name, a.Address, a.SSN, a.Funds)
	}
	fmt.Fprintln(w)
	return r.PrintUsers(w)
}

func demoPayment(w io.Writer, p *message.Printer) error {
	r := bank.NewRegistry("Orange County")
	if err := addAll(r,
		seed{0, "Makki", "240 Kearny Ln", "250-00-1234", 5000},
		seed{0, "John", "270 Oakwood St", "124-99-7576", 200},
		seed{0, "Jimmy", "120 Jamboree Rd", "999-11-2234", 1500},
		seed{0, "Ben", "459 Cedar Ln", "750-51-9254", 3000},
	); err != nil {
		return err
	}
	const payerID, payeeID, amount = 1, 3, 500.0
	if err := r.Pay(payerID, payeeID, amount); err != nil {
		p.Fprintf(w, "Transaction failed: %v\n", err)
		return nil
	}
	payer, _ := r.FindUserByID(payerID)
	payee, _ := r.FindUserByID(payeeID)
	p.Fprintf(w, "Transferred $%.2f from user %d to user %d.\n", amount, payerID, payeeID)
	p.Fprintf(w, "User %d (Payer) funds after transaction: $%.2f\n", payer.ID, payer.Funds)
	p.Fprintf(w, "User %d (Payee) funds after transaction: $%.2f\n", payee.ID, payee.Funds)
	return nil
}

func demoMedian(w io.Writer, p *message.Printer) error {
	r := bank.NewRegistry("Orange County")
	if err := addAll(r,
		seed{0, "Makki", "240 Kearny Ln", "250-00-1234", 5000},
		seed{0, "John", "270 Oakwood St", "124-99-7576", 200},
		seed{0, "Jimmy", "120 Jamboree Rd", "999-11-2234", 1500},
		seed{0, "Ben", "459 Cedar Ln", "750-51-9254", 3000},
		seed{0, "Sara", "2700 Cogenbury Ct", "750-12-9876", 2500},
	); err != nil {
		return err
	}
	m, _ := r.MedianID()
	p.Fprintf(w, "Median User ID (Odd): %g\n", m)

	if err := addAll(r, seed{0, "Rania", "4300 Skyline Rd", "606-11-3489", 250}); err != nil {
		return err
	}
	m, _ = r.MedianID()
	p.Fprintf(w, "Median User ID (Even): %g\n", m)
	return nil
}

func demoMergeAccounts(w io.Writer, p *message.Printer) error {
	r := bank.NewRegistry("Orange County")
	if err := addAll(r,
		seed{0, "Makki", "240 Kearny Ln", "250-00-1234", 2500},
		seed{0, "Makki", "240 Kearny Ln", "250-00-1234", 500},
		seed{0, "John", "270 Oakwood St", "124-99-7576", 200},
	); err != nil {
		return err
	}
	id, err := r.MergeAccounts(1, 2)
	if err != nil {
		return err
	}
	merged, _ := r.FindUserByID(id)
	p.Fprintf(w, "Merged Name: %s\n", merged.Name)
	p.Fprintf(w, "Merged Account ID: %d\n", id)
	p.Fprintf(w, "The funds of the now merged account ID %d are $%.2f.\n", id, merged.Funds)
	return nil
}

func demoMergeRegistries(w io.Writer, _ *message.Printer) error {
	oc := bank.NewRegistry("Orange County")
	if err := addAll(oc,
		seed{4, "Makki", "240 Kearny Ln", "250-00-1234", 5000},
		seed{2, "John", "270 Oakwood St", "124-99-7576", 200},
		seed{1, "Neal", "231 Devian St", "098-99-7576", 1000},
	); err != nil {
		return err
	}
	la := bank.NewRegistry("Los Angeles")
	if err := addAll(la,
		seed{2, "Jimmy", "120 Jamboree Rd", "999-11-2234", 1500},
		seed{6, "Ben", "459 Cedar Ln", "750-51-9254", 3000},
		seed{1, "Sara", "2300 Kearny Ct", "459-33-6560", 10000},
	); err != nil {
		return err
	}
	merged := bank.Merge("Southern California", oc, la)
	return merged.PrintUsersInSortedOrder(w)
}
