// internal/adapter/adapter.go
package adapter

import (
	"fmt"
	"net/http"
	"sort"

	"GachaSync/internal/config"
	"GachaSync/internal/interfaces"
	"GachaSync/internal/model"

	"github.com/sirupsen/logrus"
)

// Factory 站点适配器工厂函数签名
// 入参：游戏、来源配置、共享HTTP客户端、日志实例
type Factory func(game model.Game, src config.SourceConfig, client *http.Client, logger *logrus.Logger) interfaces.SiteAdapter

// ========== 全局工厂函数注册表 ==========
var factoryRegistry = make(map[string]Factory)

// Register 供适配器init函数调用，注册工厂函数
func Register(name string, factory Factory) {
	if factory == nil {
		panic(fmt.Sprintf("适配器%s的工厂函数不能为nil", name))
	}
	if _, exists := factoryRegistry[name]; exists {
		logrus.Warnf("适配器%s已注册，将覆盖原有实现", name)
	}
	factoryRegistry[name] = factory
}

// GetFactory 获取指定适配器的工厂函数
func GetFactory(name string) (Factory, bool) {
	factory, ok := factoryRegistry[name]
	return factory, ok
}

// ListFactories 列出所有已注册的适配器名称（排序后）
func ListFactories() []string {
	names := make([]string, 0, len(factoryRegistry))
	for n := range factoryRegistry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
