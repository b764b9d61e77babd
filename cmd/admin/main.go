package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Skyler-Tan/G17--Mini-IT-project/config"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/repository"
	"github.com/Skyler-Tan/G17--Mini-IT-project/pkg/database"
	applogger "github.com/Skyler-Tan/G17--Mini-IT-project/pkg/logger"
)

// 管理命令行：创建教师 / 管理员账号
//
//	go run ./cmd/admin adduser -email wang@example.edu -name 王老师 -role lecturer
func main() {
	cfg, err := config.Load(os.Getenv("PEER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, "warn", logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "数据库连接失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.Migrate(db, cfg.Database.Driver, logger, model.All()...); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	cli := &commandLine{users: repository.NewUserRepo(db)}
	if err := cli.run(os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
