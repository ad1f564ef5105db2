// 从 YAML 文件导入整门课程（章节、页面、测验）
//
// 课程归属于指定的教师账号，导入在单个事务中完成，课程名已存在时整体失败。
//
// 用法: go run scripts/import_course.go -file course.yaml -educator teacher@example.com [-config configs]

package main

import (
	"context"
	"flag"
	"log"
	"os"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/pkg/database"
	"learnhub_backend/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "配置目录")
	file := flag.String("file", "", "课程 YAML 文件")
	educator := flag.String("educator", "", "课程所属教师邮箱")
	flag.Parse()

	if *file == "" || *educator == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("无法读取课程文件: %v", err)
	}
	courseFile, err := service.ParseCourseFile(data)
	if err != nil {
		log.Fatalf("课程文件无效: %v", err)
	}

	ctx := context.Background()
	user, err := repository.NewUserRepository(db).FindByEmail(ctx, *educator)
	if err != nil {
		log.Fatalf("找不到教师账号 %s: %v", *educator, err)
	}

	importer := service.NewImportService(repository.NewCourseRepository(db), repository.NewQuizRepository(db), db)
	course, err := importer.ImportCourse(ctx, service.Actor{UserID: user.ID, Role: user.Role}, courseFile)
	if err != nil {
		log.Fatalf("导入失败: %v", err)
	}
	log.Printf("导入完成: %s (id=%d, %d 个章节)", course.Name, course.ID, len(courseFile.Chapters))
}
