package main

import (
	"fmt"

	"github.com/paybridge-next/internal/config"
	"github.com/paybridge-next/internal/logger"
	"github.com/paybridge-next/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加演示商品（金额单位：分）
	products := []models.Product{
		{Title: "Java课程", Price: 1},
		{Title: "大数据课程", Price: 1},
		{Title: "前端课程", Price: 1},
		{Title: "UI设计课程", Price: 1},
	}

	for _, prod := range products {
		var existing models.Product
		if err := models.DB.Where("title = ?", prod.Title).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Title, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Title)
			}
		} else {
			existing.Price = prod.Price
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Title, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Title)
			}
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Printf("- %d Products\n", len(products))
}
