// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package memcheck

import (
	"github.com/awslabs/ar-memcheck/analysis/config"
	"github.com/awslabs/ar-memcheck/analysis/ir"
	"github.com/awslabs/ar-memcheck/analysis/pfg"
)

// Reacher decides whether block b can be executed after block a
type Reacher interface {
	CanReach(a, b ir.GlobalBlock) bool
}

// UafInfo is a raw use-after-free finding: the object dropped at Drop is used through the node DerefNode at Deref.
type UafInfo struct {
	DerefNode pfg.NodeID
	Deref     pfg.Site
	Object    pfg.NodeID
	Drop      pfg.Site
}

// DfInfo is a raw double-free finding: the object FirstObject dropped at First may be dropped again as ThenObject
// at Then.
type DfInfo struct {
	FirstObject pfg.NodeID
	First       pfg.Site
	ThenObject  pfg.NodeID
	Then        pfg.Site
}

// CheckInfo holds the raw findings of one pointer flow graph
type CheckInfo struct {
	UAF []UafInfo
	DF  []DfInfo
}

// Check runs both detectors on a converged graph
func Check(g *pfg.Graph, oracle Reacher, logger *config.LogGroup) CheckInfo {
	info := CheckInfo{
		UAF: CheckUAF(g, oracle),
		DF:  CheckDF(g, oracle),
	}
	if logger.TopicEnabled(config.TopicCheck) {
		for _, u := range info.UAF {
			logger.Topicf(config.TopicCheck, "uaf: %s dropped at %s, used by %s at %s\n",
				g.Node(u.Object), u.Drop, g.Node(u.DerefNode), u.Deref)
		}
		for _, d := range info.DF {
			logger.Topicf(config.TopicCheck, "df: %s dropped at %s, then %s dropped at %s\n",
				g.Node(d.FirstObject), d.First, g.Node(d.ThenObject), d.Then)
		}
	}
	return info
}

// CheckUAF reports, for every deref edge, the objects pointed to by its dereferenced side(s) that may have been
// dropped before the edge is executed. A drop in the same block as the edge is not reported.
func CheckUAF(g *pfg.Graph, oracle Reacher) []UafInfo {
	var infos []UafInfo
	check := func(id pfg.NodeID, site pfg.Site) {
		for _, obj := range g.PointsTo(id).AppendTo(nil) {
			for _, drop := range g.Node(pfg.NodeID(obj)).DropSites {
				if drop.GlobalBlock() == site.GlobalBlock() {
					continue
				}
				if oracle.CanReach(drop.GlobalBlock(), site.GlobalBlock()) {
					infos = append(infos, UafInfo{DerefNode: id, Deref: site, Object: pfg.NodeID(obj), Drop: drop})
				}
			}
		}
	}
	for _, e := range g.DerefEdges() {
		if e.FromDeref {
			check(e.From, e.Site)
		}
		if e.ToDeref {
			check(e.To, e.Site)
		}
	}
	return infos
}

// CheckDF reports the pairs of drop sites of the objects held by a multi-drop cell such that one drop can be
// executed after the other.
func CheckDF(g *pfg.Graph, oracle Reacher) []DfInfo {
	var infos []DfInfo
	for _, first := range g.MultiDrop() {
		firstSites := g.Node(first).DropSites
		for _, obj := range g.PointsTo(first).AppendTo(nil) {
			then := pfg.NodeID(obj)
			if then == first {
				continue
			}
			for _, s1 := range firstSites {
				for _, s2 := range g.Node(then).DropSites {
					if s1.GlobalBlock() == s2.GlobalBlock() {
						continue
					}
					if oracle.CanReach(s1.GlobalBlock(), s2.GlobalBlock()) {
						infos = append(infos, DfInfo{FirstObject: first, First: s1, ThenObject: then, Then: s2})
					}
					if oracle.CanReach(s2.GlobalBlock(), s1.GlobalBlock()) {
						infos = append(infos, DfInfo{FirstObject: then, First: s2, ThenObject: first, Then: s1})
					}
				}
			}
		}
	}
	return infos
}

// Results converts the raw findings into results carrying the names of the variables involved
func (info CheckInfo) Results(g *pfg.Graph) ([]UafResult, []DfResult) {
	uafs := make([]UafResult, 0, len(info.UAF))
	for _, u := range info.UAF {
		uafs = append(uafs, UafResult{
			Deref:    u.Deref.Loc,
			DerefVar: g.Node(u.DerefNode).Name,
			Drop:     u.Drop.Loc,
			DropVar:  g.Node(u.Object).Name,
		})
	}
	dfs := make([]DfResult, 0, len(info.DF))
	for _, d := range info.DF {
		dfs = append(dfs, DfResult{
			First:    d.First.Loc,
			FirstVar: g.Node(d.FirstObject).Name,
			Then:     d.Then.Loc,
			ThenVar:  g.Node(d.ThenObject).Name,
		})
	}
	return uafs, dfs
}
