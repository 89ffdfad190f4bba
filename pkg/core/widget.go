package core

// Widget is an immutable description of part of the UI.
type Widget interface {
	CreateElement() Element
	Key() any
}

// StatelessWidget builds its child from its own configuration.
type StatelessWidget interface {
	Widget
	Build(ctx BuildContext) Widget
}

// StatefulWidget creates a State that lives as long as its element.
type StatefulWidget interface {
	Widget
	CreateState() State
}

// State is the mutable part of a StatefulWidget.
type State interface {
	InitState()
	Build(ctx BuildContext) Widget
	SetState(fn func())
	Dispose()
	DidChangeDependencies()
	DidUpdateWidget(oldWidget StatefulWidget)
}

// BuildContext is the handle a widget receives during Build.
type BuildContext interface {
	Widget() Widget
	Depth() int
	FindAncestor(predicate func(Element) bool) Element
}

// Element is a widget instantiated at a location in the tree.
type Element interface {
	BuildContext
	Mount(parent Element, slot any)
	Update(newWidget Widget)
	Unmount()
	MarkNeedsBuild()
	RebuildIfNeeded()
	VisitChildren(visitor func(Element) bool)
}

// Disposable is implemented by controllers released with their state.
type Disposable interface {
	Dispose()
}
