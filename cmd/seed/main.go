// Bulk-imports LTD codes into the lookup table, one code per line.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"expense-ltd/internal/config"
	"expense-ltd/internal/domain/model"
	pg "expense-ltd/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	file := flag.String("file", "", "path to a file with one code per line")
	planFlag := flag.String("plan", "basic_ltd", "plan tier the codes activate")
	expiresFlag := flag.String("expires", "", "optional expiry (RFC 3339)")
	flag.Parse()

	if *file == "" {
		log.Fatal("usage: seed -file codes.txt [-plan premium_ltd] [-expires 2027-01-01T00:00:00Z]")
	}
	plan := model.PlanType(*planFlag)
	if !plan.Valid() {
		log.Fatalf("unknown plan %q; one of %v", *planFlag, model.KnownPlanTypes)
	}
	var expiresAt *time.Time
	if *expiresFlag != "" {
		t, err := time.Parse(time.RFC3339, *expiresFlag)
		if err != nil {
			log.Fatalf("parse expires: %v", err)
		}
		expiresAt = &t
	}

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("open codes file: %v", err)
	}
	defer f.Close()

	codeRepo := pg.NewCodeRepo(pool)
	now := time.Now()
	imported, skipped := 0, 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		raw := scanner.Text()
		code := model.NormalizeCode(raw)
		if code == "" {
			continue
		}
		if !model.ValidCodeFormat(code) {
			fmt.Printf("skipped (bad format): %s\n", raw)
			skipped++
			continue
		}
		entry := &model.LTDCode{
			ID:        uuid.NewString(),
			Code:      code,
			PlanType:  plan,
			Status:    model.CodeStatusAvailable,
			IssuedAt:  now,
			ExpiresAt: expiresAt,
		}
		inserted, err := codeRepo.Create(ctx, nil, entry)
		if err != nil {
			log.Fatalf("import %s: %v", code, err)
		}
		if !inserted {
			fmt.Printf("skipped (already known): %s\n", code)
			skipped++
			continue
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read codes file: %v", err)
	}

	fmt.Printf("imported %d codes as %s (%d skipped)\n", imported, plan, skipped)
}
