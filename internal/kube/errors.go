package kube

import (
	"context"
	stderrors "errors"
	"net"

	"github.com/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	internalerrors "github.com/scc-digitalhub/custom-resource-manager/internal/errors"
)

// classifyError maps an object store failure onto the gateway error taxonomy.
func classifyError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	switch {
	case stderrors.Is(err, context.Canceled),
		stderrors.Is(err, context.DeadlineExceeded),
		apierrors.IsTimeout(err),
		stderrors.As(err, &netErr) && netErr.Timeout():
		return internalerrors.NewCanceledError(operation, err)
	case apierrors.IsConflict(err), apierrors.IsAlreadyExists(err):
		return internalerrors.NewConflictError(operation, err)
	case apierrors.IsServerTimeout(err),
		apierrors.IsTooManyRequests(err),
		apierrors.IsServiceUnavailable(err),
		apierrors.IsInternalError(err):
		return internalerrors.NewTransientError(operation, err)
	case apierrors.IsNotFound(err):
		return internalerrors.NewNotFoundError(err.Error())
	case apierrors.IsInvalid(err), apierrors.IsBadRequest(err):
		return internalerrors.NewInvalidArgumentError(err.Error())
	default:
		return errors.Wrapf(err, "failed to %s", operation)
	}
}
