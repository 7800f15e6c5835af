package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	"github.com/scc-digitalhub/custom-resource-manager/internal/lib"
	"github.com/scc-digitalhub/custom-resource-manager/internal/repository/types"
	"github.com/scc-digitalhub/custom-resource-manager/internal/service"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/types/schema"
)

type commandContext struct {
	ctx     context.Context
	schemas service.SchemaService
	logger  *zap.Logger
	out     io.Writer
}

type clusterCmd struct {
	CRDID string `arg:"" name:"crd-id" help:"Resource kind id, <plural>.<group>"`
}

func (c *clusterCmd) Run(cc *commandContext) error {
	imported, err := cc.schemas.ImportFromCluster(cc.ctx, c.CRDID)
	if err != nil {
		return err
	}

	sort.Slice(imported, func(i, j int) bool { return imported[i].Version < imported[j].Version })
	for _, s := range imported {
		fmt.Fprintf(cc.out, "imported %s\n", s)
	}
	return nil
}

type fileCmd struct {
	CRDID   string `arg:"" name:"crd-id" help:"Resource kind id, <plural>.<group>"`
	Version string `arg:"" help:"Version the schema applies to"`
	Path    string `arg:"" type:"existingfile" help:"JSON or YAML schema document"`
}

func (c *fileCmd) Run(cc *commandContext) error {
	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", c.Path)
	}

	// YAML is a superset of JSON, so both formats go through the same conversion
	data, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return errors.Wrapf(err, "failed to parse %s", c.Path)
	}

	document := lib.DecodeJSONMap(string(data))
	if document == nil {
		return errors.Errorf("%s does not hold a schema object", c.Path)
	}

	s := &schema.VersionedSchema{
		KindID:   c.CRDID,
		Version:  c.Version,
		Document: document,
	}
	if err := cc.schemas.Register(cc.ctx, s); err != nil {
		return err
	}
	cc.logger.Debug("Schema registered from file",
		zap.Object("key", types.SchemaKey{KindID: s.KindID, Version: s.Version}),
		zap.String("path", c.Path))

	fmt.Fprintf(cc.out, "imported %s\n", s)
	return nil
}

type listCmd struct {
	CRDID string `arg:"" optional:"" name:"crd-id" help:"Only list schemas of this kind"`
}

func (c *listCmd) Run(cc *commandContext) error {
	schemas, err := cc.schemas.List(cc.ctx, c.CRDID)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(schemas)
	if err != nil {
		return errors.Wrap(err, "failed to render schemas")
	}

	_, err = cc.out.Write(out)
	return err
}
