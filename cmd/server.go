package cmd

import (
	"musicbox/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动musicbox服务器",
	Long:  `启动音乐库的HTTP API服务，提供歌曲、歌单、播放历史、评论和上传接口`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
