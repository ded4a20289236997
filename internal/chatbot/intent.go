// Package chatbot 实现了目录聊天机器人的查询分类、比较会话状态机与结果格式化。
package chatbot

import "strings"

// Intents 描述一条用户消息命中的关键词类别。
// Product 与 Supplier 相互独立，一条消息可以同时命中两者。
type Intents struct {
	Compare  bool
	Product  bool
	Supplier bool
}

// Help 表示没有任何关键词命中。
func (i Intents) Help() bool {
	return !i.Compare && !i.Product && !i.Supplier
}

// Labels 返回命中的类别名，用于事件上报。
func (i Intents) Labels() []string {
	var labels []string
	if i.Compare {
		labels = append(labels, "compare")
	}
	if i.Product {
		labels = append(labels, "product")
	}
	if i.Supplier {
		labels = append(labels, "supplier")
	}
	if len(labels) == 0 {
		labels = append(labels, "help")
	}
	return labels
}

// ClassifyIntents 对用户输入做大小写不敏感的子串匹配。
func ClassifyIntents(text string) Intents {
	t := strings.ToLower(text)
	return Intents{
		Compare:  strings.Contains(t, "compare"),
		Product:  strings.Contains(t, "product") || strings.Contains(t, "brand"),
		Supplier: strings.Contains(t, "supplier") || strings.Contains(t, "provider"),
	}
}
