//go:build !mobile

// 桌面构建时的占位文件，真正的入口在 mobile.go
package mobile

// Dummy 保证包在非移动端构建时也能被引用
func Dummy() {}
