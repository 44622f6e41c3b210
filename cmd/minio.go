package cmd

import (
	"context"
	"fmt"
	"log"

	"musicbox/storage"

	"github.com/spf13/cobra"
)

var (
	minioPrefix string
	minioStats  bool
	minioDelete bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO存储桶管理",
	Long:  `查看和管理存放上传歌曲和封面的MinIO存储桶，支持列出文件、查看统计信息、按前缀删除文件。`,
	Run: func(cmd *cobra.Command, args []string) {
		if !cfg.UseMinio() {
			log.Fatal("未配置 MINIO_ENDPOINT")
		}
		fmt.Println("开始连接MinIO服务器...")
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		ctx := context.Background()
		store, err := storage.NewMinioStore(ctx, cfg)
		if err != nil {
			log.Fatalf("无法连接到MinIO: %v", err)
		}
		fmt.Println("MinIO连接成功！")

		objects, stats, err := store.ListObjects(ctx, minioPrefix)
		if err != nil {
			log.Fatalf("列出文件失败: %v", err)
		}

		switch {
		case minioDelete:
			if minioPrefix == "" {
				log.Fatal("删除操作需要指定前缀")
			}
			fmt.Printf("\n删除前缀为 %s 的 %d 个文件\n", minioPrefix, len(objects))
			for _, obj := range objects {
				if err := store.Delete(ctx, obj.Key); err != nil {
					log.Printf("删除 %s 失败: %v", obj.Key, err)
					continue
				}
				fmt.Printf("已删除: %s\n", obj.Key)
			}
		case minioStats:
			fmt.Printf("\n存储桶: %s\n", store.Bucket())
			fmt.Printf("文件总数: %d\n", stats.TotalObjects)
			fmt.Printf("总大小: %.2f MB\n", float64(stats.TotalSize)/1024/1024)
			if stats.TotalObjects > 0 {
				fmt.Printf("最后修改时间: %s\n", stats.LastModified.Format("2006-01-02 15:04:05"))
			}
		default:
			fmt.Printf("\n列出存储桶中的文件 (前缀: %s)...\n", minioPrefix)
			for _, obj := range objects {
				fmt.Printf("%-60s %10d  %s\n", obj.Key, obj.Size, obj.LastModified.Format("2006-01-02 15:04:05"))
			}
			fmt.Printf("共 %d 个文件\n", len(objects))
		}

		fmt.Println("\nMinIO操作完成！")
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "按前缀过滤文件或指定要删除的前缀")
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "显示存储桶统计信息")
	minioCmd.Flags().BoolVarP(&minioDelete, "delete", "d", false, "删除指定前缀下的所有文件")

	minioCmd.Example = `  # 列出所有文件
  musicbox minio

  # 显示存储桶统计信息
  musicbox minio -s

  # 删除前缀下的所有文件
  musicbox minio -d -p "tmp-"`
}
