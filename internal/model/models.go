package model

// 所有模型的统一导入点
// 用于 AutoMigrate，顺序保证外键目标先建表
var AllModels = []interface{}{
	&Tool{},
	&UsageEvent{},
	&Category{},
}
