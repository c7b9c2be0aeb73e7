// embed.go - 默认配置嵌入声明
// 必须放在项目根目录（与 data/ 同级）
package main

import _ "embed"

//go:embed data/game.yaml
var defaultGameConfig []byte
