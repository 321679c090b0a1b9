package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"ewaste-exchange/internal/config"
	"ewaste-exchange/internal/database"
	"ewaste-exchange/internal/middleware"
	"ewaste-exchange/internal/models"
	"ewaste-exchange/internal/scrap"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Development seeder: creates sellers with listings on both sides of the scrap
// threshold, recycling centers, runs one classification and checks that the
// aggregator sees the result.

type StepResult struct {
	Step      string    `json:"step"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Details   any       `json:"details,omitempty"`
}

type SeedResults struct {
	Database       string       `json:"database"`
	Results        []StepResult `json:"results"`
	OverallSuccess bool         `json:"overall_success"`
	AdminToken     string       `json:"admin_token,omitempty"`
	ExecutedAt     time.Time    `json:"executed_at"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg, err := config.LoadConfig(getEnv("CONFIG_PATH", "config/config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gdb, err := database.Open(cfg.Database, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer gdb.Close()

	if err := gdb.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	ctx := context.Background()
	results := &SeedResults{
		Database:   cfg.Database.Type,
		ExecutedAt: time.Now(),
	}

	results.Results = append(results.Results, seedSellers(ctx, gdb, cfg.Scrap.AgeThreshold()))
	results.Results = append(results.Results, seedRecyclingCenters(ctx, gdb))
	results.Results = append(results.Results, classifyOnce(ctx, gdb, cfg.Scrap.AgeThreshold()))
	results.Results = append(results.Results, checkAggregation(ctx, gdb))

	results.OverallSuccess = true
	for _, r := range results.Results {
		if !r.Success {
			results.OverallSuccess = false
			break
		}
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = "dev-secret"
		log.Println("JWT_SECRET not set, signing the admin token with the development secret")
	}
	token, err := middleware.NewAccessToken(secret, "seed-admin", middleware.RoleAdmin, 24*time.Hour)
	if err != nil {
		log.Printf("Failed to sign admin token: %v", err)
	} else {
		results.AdminToken = token
	}

	log.Println("===========================================")
	for i, r := range results.Results {
		status := "PASS"
		if !r.Success {
			status = "FAIL"
		}
		log.Printf("%d. %s: %s (%s)", i+1, r.Step, status, r.Message)
	}
	log.Println("===========================================")
	if results.AdminToken != "" {
		log.Printf("Admin token (24h): %s", results.AdminToken)
	}

	saveResults(results)

	if !results.OverallSuccess {
		os.Exit(1)
	}
}

func seedSellers(ctx context.Context, gdb *database.GormDB, threshold time.Duration) StepResult {
	result := StepResult{Step: "sellers and listings", Timestamp: time.Now()}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		result.Message = fmt.Sprintf("hash password: %v", err)
		return result
	}

	now := time.Now().UTC()
	createdUsers, createdListings, skipped := 0, 0, 0
	for _, s := range sellerFixtures {
		if _, err := gdb.GetUserByEmail(ctx, s.email); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, database.ErrNotFound) {
			result.Message = fmt.Sprintf("look up %s: %v", s.email, err)
			return result
		}

		user := &models.User{
			FirstName:    s.firstName,
			LastName:     s.lastName,
			Email:        s.email,
			PasswordHash: string(hash),
			UserType:     models.UserTypeSeller,
			Address:      s.address,
		}
		if err := gdb.CreateUser(ctx, user); err != nil {
			result.Message = fmt.Sprintf("create user %s: %v", s.email, err)
			return result
		}
		createdUsers++

		for _, item := range s.items {
			listing := &models.Listing{
				Title:           item.title,
				Category:        item.category,
				Price:           item.price,
				Grade:           item.grade,
				Location:        s.address.City,
				SellerID:        user.ID,
				EstimatedWeight: item.weightKg,
				CreatedAt:       listingCreatedAt(now, threshold, item.aged),
			}
			if err := gdb.CreateListing(ctx, listing); err != nil {
				result.Message = fmt.Sprintf("create listing %q: %v", item.title, err)
				return result
			}
			createdListings++
		}
	}

	result.Success = true
	result.Message = fmt.Sprintf("%d sellers and %d listings created, %d sellers already present", createdUsers, createdListings, skipped)
	result.Details = map[string]int{"users": createdUsers, "listings": createdListings, "skipped": skipped}
	return result
}

func seedRecyclingCenters(ctx context.Context, gdb *database.GormDB) StepResult {
	result := StepResult{Step: "recycling centers", Timestamp: time.Now()}

	existing, err := gdb.ListRecyclingCenters(ctx)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	if len(existing) > 0 {
		result.Success = true
		result.Message = fmt.Sprintf("%d centers already present", len(existing))
		return result
	}

	for i := range centerFixtures {
		center := centerFixtures[i]
		if err := gdb.CreateRecyclingCenter(ctx, &center); err != nil {
			result.Message = fmt.Sprintf("create center %q: %v", center.Name, err)
			return result
		}
	}
	result.Success = true
	result.Message = fmt.Sprintf("%d centers created", len(centerFixtures))
	return result
}

func classifyOnce(ctx context.Context, gdb *database.GormDB, threshold time.Duration) StepResult {
	result := StepResult{Step: "scrap classification", Timestamp: time.Now()}

	classifier := scrap.NewClassifier(gdb, scrap.ClassifierConfig{AgeThreshold: threshold}, zap.NewNop())
	run, err := classifier.Run(ctx, models.ScrapTriggerManual)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	result.Success = true
	result.Message = fmt.Sprintf("%d listings flagged", run.FlaggedCount)
	result.Details = run
	return result
}

func checkAggregation(ctx context.Context, gdb *database.GormDB) StepResult {
	result := StepResult{Step: "scrap aggregation", Timestamp: time.Now()}

	views, err := scrap.NewAggregator(gdb).SellerViews(ctx)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	if len(views) == 0 {
		result.Message = "no sellers with scrap listings"
		return result
	}

	summary := make(map[string]string, len(views))
	for _, v := range views {
		summary[v.Name] = v.EstimatedWeight
	}
	result.Success = true
	result.Message = fmt.Sprintf("%d sellers with scrap listings", len(views))
	result.Details = summary
	return result
}

// listingCreatedAt backdates aged listings a day past the threshold
func listingCreatedAt(now time.Time, threshold time.Duration, aged bool) time.Time {
	if aged {
		return now.Add(-threshold - 24*time.Hour)
	}
	return now.Add(-time.Hour)
}

func saveResults(results *SeedResults) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal results: %v", err)
		return
	}

	filename := fmt.Sprintf("seed_results_%s.json", time.Now().Format("20060102_150405"))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		log.Printf("Failed to save results: %v", err)
		return
	}
	log.Printf("Results saved to %s", filename)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
