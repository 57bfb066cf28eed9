/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/darkstoreops/approval-api/internal/config"
	"github.com/darkstoreops/approval-api/internal/container"
	"github.com/darkstoreops/approval-api/internal/workflow"
	"github.com/spf13/cobra"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo approval tasks",
	Long: `Seed the database with generated pending approval tasks.
Use --domain to seed a single business domain (finance or procurement);
by default both domains are seeded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		count, _ := cmd.Flags().GetInt("count")
		if count <= 0 {
			count = cfg.Seed.Count
		}

		// 2. 初始化容器
		ctr, err := container.NewContainer(cfg, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 3. 解析目标业务域
		domains := workflow.Domains()
		if name, _ := cmd.Flags().GetString("domain"); name != "" {
			domain, err := workflow.ParseDomain(name)
			if err != nil {
				return fmt.Errorf("invalid domain %q: %w", name, err)
			}
			domains = []workflow.Domain{domain}
		}

		// 4. 生成种子数据
		ctx := context.Background()
		for _, domain := range domains {
			tasks, err := ctr.SeedService().Seed(ctx, domain, count)
			if err != nil {
				return fmt.Errorf("failed to seed domain %s: %w", domain, err)
			}
			log.Printf("Seeded %d tasks for domain %s", len(tasks), domain)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
	seedCmd.Flags().String("domain", "", "Domain to seed (finance or procurement, default: all)")
	seedCmd.Flags().Int("count", 0, "Number of tasks to seed per domain (default: from config)")
}
