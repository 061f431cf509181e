// Package autoload initializes the global logger from LOGGER_* env
// variables as a side effect of being imported.
package autoload

import (
	configx "github.com/gecortesh/chatbot-ecommerce/pkg/config"
	logx "github.com/gecortesh/chatbot-ecommerce/pkg/logger"
)

func init() {
	conf := configx.MustNew[logx.Config]("LOGGER")
	logx.Init(*conf)
}
