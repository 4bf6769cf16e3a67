// Package seed populates an empty catalog with a handful of demo listings so
// a fresh install has something to browse.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"campus-market/internal/auth"
	"campus-market/internal/domain"
	"campus-market/internal/repository"
)

type sample struct {
	seller      string
	email       string
	title       string
	description string
	price       float64
	category    domain.Category
}

var samples = []sample{
	{
		seller:      "Rahul Sharma",
		email:       "rahul.sharma@example.com",
		title:       "iPhone 12 Pro",
		description: "Excellent condition iPhone 12 Pro, 128GB, Space Gray. Used for 1 year.",
		price:       45000,
		category:    domain.CategoryElectronics,
	},
	{
		seller:      "Priya Singh",
		email:       "priya.singh@example.com",
		title:       "Data Structures & Algorithms Book",
		description: "Complete book for CSE students. All chapters covered with examples.",
		price:       800,
		category:    domain.CategoryBooks,
	},
	{
		seller:      "Amit Kumar",
		email:       "amit.kumar@example.com",
		title:       "Study Table with Chair",
		description: "Wooden study table with comfortable chair. Perfect for hostel room.",
		price:       3500,
		category:    domain.CategoryHostel,
	},
	{
		seller:      "Neha Gupta",
		email:       "neha.gupta@example.com",
		title:       "Formal Shirt - Medium",
		description: "Brand new formal shirt, size M. Perfect for placements and interviews.",
		price:       1200,
		category:    domain.CategoryClothing,
	},
}

// Run inserts the demo users and listings when the catalog is empty.
// Demo accounts get an unguessable password, so they cannot be logged into.
func Run(ctx context.Context, users repository.UserRepository, products repository.ProductRepository, logger *logrus.Logger) error {
	count, err := products.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, s := range samples {
		hash, err := auth.HashPassword(uuid.NewString())
		if err != nil {
			return fmt.Errorf("hash demo password: %w", err)
		}
		user := &domain.User{
			ID:           uuid.NewString(),
			Name:         s.seller,
			Email:        s.email,
			PasswordHash: hash,
			CreatedAt:    now,
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", s.email, err)
		}

		product := &domain.Product{
			ID:          uuid.NewString(),
			Title:       s.title,
			Description: s.description,
			Price:       s.price,
			Category:    s.category,
			SellerID:    user.ID,
			SellerName:  user.Name,
			Status:      domain.ProductStatusActive,
			CreatedAt:   now,
		}
		if err := products.Create(ctx, product); err != nil {
			return fmt.Errorf("seed product %s: %w", s.title, err)
		}
	}

	logger.Infof("seeded %d sample listings", len(samples))
	return nil
}
