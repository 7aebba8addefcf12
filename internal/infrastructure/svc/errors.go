package svc

import "errors"

// ErrNoInstruments 错误：没有配置任何品种
var ErrNoInstruments = errors.New("no instruments configured")

// ErrStorageInitFailed 错误：存储初始化失败
var ErrStorageInitFailed = errors.New("storage initialization failed")

// ErrNoMirrors 错误：启用了 feed 却没有可用镜像
var ErrNoMirrors = errors.New("feed enabled but no usable mirror")
