// Command stock-audit re-verifies every product's stock-history chain and the
// money arithmetic of every stored transaction. It exits 1 when any
// violation is found and 2 when the audit could not run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go-pos-ws/internal/config"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/pkg/database"

	"github.com/google/uuid"
)

func main() {
	company := flag.String("company", "", "Company ID to audit (default: all companies)")
	jsonOutput := flag.Bool("json", false, "Output the report in JSON format")
	timeout := flag.Duration("timeout", 10*time.Minute, "Abort the audit after this long")
	flag.Parse()

	var scope repository.Scope
	if *company != "" {
		id, err := uuid.Parse(*company)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -company: %v\n", err)
			os.Exit(2)
		}
		scope.CompanyID = &id
	}

	cfg := config.Load()
	db := database.ConnectDB(cfg.DatabaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	audit := service.NewAuditService(
		repository.NewProductRepo(db),
		repository.NewStockHistoryRepo(db),
		repository.NewTransactionRepo(db),
	)
	report, err := audit.Run(ctx, scope)
	if err != nil {
		log.Printf("Audit failed: %v", err)
		os.Exit(2)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Printf("Encode report: %v", err)
			os.Exit(2)
		}
	} else {
		fmt.Printf("Products checked:     %d\n", report.ProductsChecked)
		fmt.Printf("History entries:      %d\n", report.HistoryEntries)
		fmt.Printf("Transactions checked: %d\n", report.TransactionsChecked)
		for _, v := range report.Violations {
			fmt.Printf("VIOLATION [%s] %s: %s\n", v.Kind, v.RefID, v.Detail)
		}
		if report.OK() {
			fmt.Println("OK: no violations")
		}
	}

	if !report.OK() {
		os.Exit(1)
	}
}
