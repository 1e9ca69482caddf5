// Package main 启动应用程序
package main

import (
	"os"

	"github.com/yeisme/wikiviews/pkg/cmd"
)

//	@title			wikiviews API
//	@version		1.0
//	@description	wikiviews 代理并聚合英文维基百科的浏览量统计（Wikimedia pageviews REST API）。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com.

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
