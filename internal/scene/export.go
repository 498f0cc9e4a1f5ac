package scene

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/msalah0e/gridmap/internal/detail"
	"github.com/msalah0e/gridmap/internal/taxonomy"
)

// ExportDOT returns the scene in Graphviz DOT format with pinned positions
// (render with `neato -n`). Graphviz y grows upwards, so y is negated.
func (s *Scene) ExportDOT(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", dotQuote(name))
	b.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white];\n\n")

	for _, n := range s.Nodes {
		fmt.Fprintf(&b, "  %s [label=%s, fillcolor=%s, pos=\"%g,%g!\"];\n",
			dotQuote(n.ID), dotQuote(n.Title()+"\n("+n.TypeName()+")"), dotQuote(string(taxonomy.ColorOf(n.Type))), n.X, 0-n.Y)
	}

	b.WriteString("\n")
	for _, e := range s.Edges {
		style := "solid"
		if e.Animated {
			style = "bold"
		}
		arrow := "none"
		if e.Arrow {
			arrow = "normal"
		}
		fmt.Fprintf(&b, "  %s -> %s [label=%s, color=%s, penwidth=%g, style=%s, arrowhead=%s];\n",
			dotQuote(e.Source), dotQuote(e.Target), dotQuote(string(e.Relation)), dotQuote(string(e.Color)), e.Width, style, arrow)
	}

	b.WriteString("}\n")
	return b.String()
}

// DOT strings are UTF-8. Quotes and backslashes are escaped, line breaks
// become \n.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// ExportHTML returns a self-contained HTML page drawing the scene as SVG at its
// computed positions. Clicking a node opens its detail panel.
func (s *Scene) ExportHTML(title string, loc taxonomy.Locale) (string, error) {
	type jsNode struct {
		ID    string       `json:"id"`
		Title string       `json:"title"`
		Glyph string       `json:"glyph"`
		Color string       `json:"color"`
		X     float64      `json:"x"`
		Y     float64      `json:"y"`
		Panel detail.Panel `json:"panel"`
	}
	type jsEdge struct {
		Source   string  `json:"source"`
		Target   string  `json:"target"`
		Color    string  `json:"color"`
		Width    float64 `json:"width"`
		Animated bool    `json:"animated"`
	}
	type jsLegend struct {
		Label string `json:"label"`
		Color string `json:"color"`
		Glyph string `json:"glyph"`
	}

	nodes := make([]jsNode, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes = append(nodes, jsNode{
			ID:    n.ID,
			Title: n.Title(),
			Glyph: taxonomy.IconOf(n.Type).Glyph,
			Color: string(taxonomy.ColorOf(n.Type)),
			X:     n.X,
			Y:     n.Y,
			Panel: detail.Build(n.Node, loc),
		})
	}
	links := make([]jsEdge, 0, len(s.Edges))
	for _, e := range s.Edges {
		links = append(links, jsEdge{Source: e.Source, Target: e.Target, Color: string(e.Color), Width: e.Width, Animated: e.Animated})
	}
	legend := make([]jsLegend, 0, len(taxonomy.All))
	for _, t := range taxonomy.All {
		if t.IsLeaf() && !s.Visible.Has(t) {
			continue
		}
		legend = append(legend, jsLegend{Label: taxonomy.LabelOf(t, loc), Color: string(taxonomy.ColorOf(t)), Glyph: taxonomy.IconOf(t).Glyph})
	}

	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return "", err
	}
	edgesJSON, err := json.Marshal(links)
	if err != nil {
		return "", err
	}
	legendJSON, err := json.Marshal(legend)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(htmlPage, html.EscapeString(title), s.Stats.VisibleNodes, s.Stats.VisibleEdges,
		nodesJSON, edgesJSON, legendJSON), nil
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%[1]s</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
body{background:#0a0e17;color:#e0e0e0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',sans-serif;overflow:hidden}
svg{display:block;width:100vw;height:100vh}
#info{position:fixed;top:16px;left:16px;background:rgba(10,14,23,0.9);border:1px solid rgba(45,182,130,0.3);border-radius:12px;padding:16px 20px;font-size:13px}
#info h2{color:#2DB682;font-size:16px;margin-bottom:8px}
.stat{color:#888;margin:2px 0}
.stat b{color:#ccc}
#panel{position:fixed;top:16px;right:16px;width:300px;display:none;background:rgba(10,14,23,0.95);border:1px solid rgba(45,182,130,0.5);border-radius:10px;padding:14px 18px;font-size:12px}
#panel h3{font-size:14px;margin-bottom:8px}
#panel dt{color:#888;margin-top:6px}
#panel button{float:right;background:none;border:none;color:#888;cursor:pointer;font-size:14px}
#legend{position:fixed;bottom:16px;left:16px;background:rgba(10,14,23,0.9);border-radius:10px;padding:12px 16px;font-size:11px;color:#aaa}
.leg-row{margin:3px 0}
.flow{stroke-dasharray:6 4;animation:flow 1s linear infinite}
@keyframes flow{to{stroke-dashoffset:-10}}
</style>
</head>
<body>
<div id="info">
  <h2>%[1]s</h2>
  <div class="stat"><b>%[2]d</b> nodes</div>
  <div class="stat"><b>%[3]d</b> edges</div>
</div>
<div id="panel"></div>
<div id="legend"></div>
<svg id="canvas"></svg>
<script>
"use strict";
const NODES=%[4]s;
const EDGES=%[5]s;
const LEGEND=%[6]s;
const NS='http://www.w3.org/2000/svg';
const svg=document.getElementById('canvas');
const panel=document.getElementById('panel');
const byId={};
NODES.forEach(n=>{byId[n.id]=n});

let minX=0,maxX=0,minY=0,maxY=0;
NODES.forEach(n=>{minX=Math.min(minX,n.x);maxX=Math.max(maxX,n.x);minY=Math.min(minY,n.y);maxY=Math.max(maxY,n.y)});
svg.setAttribute('viewBox',(minX-120)+' '+(minY-80)+' '+(maxX-minX+240)+' '+(maxY-minY+160));

function el(tag,attrs){const e=document.createElementNS(NS,tag);for(const k in attrs)e.setAttribute(k,attrs[k]);return e}

EDGES.forEach(e=>{
  const s=byId[e.source],t=byId[e.target];
  if(!s||!t)return;
  const line=el('line',{x1:s.x,y1:s.y,x2:t.x,y2:t.y,stroke:e.color,'stroke-width':e.width,'stroke-opacity':0.7});
  if(e.animated)line.setAttribute('class','flow');
  svg.appendChild(line);
});

let selected=null;
function show(n){
  selected=n.id;
  const rows=n.panel.rows.map(r=>'<dt>'+esc(r.label)+'</dt><dd>'+esc(r.value)+'</dd>').join('');
  panel.innerHTML='<button onclick="hide()">x</button><h3 style="color:'+n.color+'">'+esc(n.glyph+' '+n.title)+'</h3><dl>'+rows+'</dl>';
  panel.style.display='block';
}
function hide(){selected=null;panel.style.display='none'}
function esc(s){const d=document.createElement('div');d.textContent=s;return d.innerHTML}

NODES.forEach(n=>{
  const g=el('g',{transform:'translate('+n.x+','+n.y+')',cursor:'pointer'});
  g.appendChild(el('circle',{r:18,fill:n.color}));
  const glyph=el('text',{'text-anchor':'middle',dy:5,fill:'#fff','font-size':14});
  glyph.textContent=n.glyph;
  g.appendChild(glyph);
  const label=el('text',{'text-anchor':'middle',dy:36,fill:'#ccc','font-size':11});
  label.textContent=n.title;
  g.appendChild(label);
  g.addEventListener('click',()=>{if(selected!==n.id)show(n)});
  svg.appendChild(g);
});

const legend=document.getElementById('legend');
LEGEND.forEach(l=>{
  const row=document.createElement('div');
  row.className='leg-row';
  row.style.color=l.color;
  row.textContent=l.glyph+' '+l.label;
  legend.appendChild(row);
});
</script>
</body>
</html>
`
