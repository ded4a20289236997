package chatbot

// Session 是单个会话的比较模式状态机。
// 它要么处于空闲态（每条消息独立分类），要么处于收集态（每条消息都交由
// 比较逻辑消费）。实例归属于单个会话，不得跨会话共享。
type Session struct {
	active   bool
	selected []uint
}

// Active 返回会话是否处于收集态。
func (s *Session) Active() bool {
	return s.active
}

// Start 进入收集态并清空已选产品。
func (s *Session) Start() {
	s.active = true
	s.selected = s.selected[:0]
}

// Add 按插入顺序追加一个产品 ID，允许重复。
func (s *Session) Add(id uint) {
	s.selected = append(s.selected, id)
}

// Selected 返回已选产品 ID 的副本。
func (s *Session) Selected() []uint {
	ids := make([]uint, len(s.selected))
	copy(ids, s.selected)
	return ids
}

// Count 返回已选产品数量。
func (s *Session) Count() int {
	return len(s.selected)
}

// Reset 回到空闲态并丢弃已选产品。
func (s *Session) Reset() {
	s.active = false
	s.selected = nil
}
