package observability

import (
	"context"

	"github.com/aretw0/aacflow/pkg/domain"
)

// Chain merges several hook sets. Each callback fans out, in order, to every
// set that defines it; a callback no set defines stays nil.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var enter, leave []func(context.Context, *domain.NodeEvent)
	var call, ret []func(context.Context, *domain.ProviderEvent)

	for _, h := range sets {
		if h.OnNodeEnter != nil {
			enter = append(enter, h.OnNodeEnter)
		}
		if h.OnNodeLeave != nil {
			leave = append(leave, h.OnNodeLeave)
		}
		if h.OnProviderCall != nil {
			call = append(call, h.OnProviderCall)
		}
		if h.OnProviderReturn != nil {
			ret = append(ret, h.OnProviderReturn)
		}
	}

	return domain.LifecycleHooks{
		OnNodeEnter:      fanOut(enter),
		OnNodeLeave:      fanOut(leave),
		OnProviderCall:   fanOut(call),
		OnProviderReturn: fanOut(ret),
	}
}

func fanOut[E any](fns []func(context.Context, E)) func(context.Context, E) {
	switch len(fns) {
	case 0:
		return nil
	case 1:
		return fns[0]
	}
	return func(ctx context.Context, e E) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}
