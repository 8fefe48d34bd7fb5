package workspace

// SetSurfaceSelected sets the selection flag of a surface.
func (w *Workspace) SetSurfaceSelected(id SurfaceID, selected bool) error {
	s, err := w.surface(id)
	if err != nil {
		return err
	}
	s.selected = selected
	return nil
}

// SetLineSelected sets the selection flag of a line.
func (w *Workspace) SetLineSelected(id LineID, selected bool) error {
	l, err := w.line(id)
	if err != nil {
		return err
	}
	l.selected = selected
	return nil
}

// SelectAll selects every surface and line.
func (w *Workspace) SelectAll() {
	w.setAll(true)
}

// ClearSelection deselects every surface and line.
func (w *Workspace) ClearSelection() {
	w.setAll(false)
}

func (w *Workspace) setAll(v bool) {
	for _, h := range w.surfaces.handles() {
		s, _ := w.surfaces.get(h)
		s.selected = v
	}
	for _, h := range w.lines.handles() {
		l, _ := w.lines.get(h)
		l.selected = v
	}
}

// Selection returns the selected surfaces and lines in creation order.
func (w *Workspace) Selection() (surfaces []SurfaceID, lines []LineID) {
	for _, h := range w.surfaces.handles() {
		if s, _ := w.surfaces.get(h); s.selected {
			surfaces = append(surfaces, SurfaceID{h})
		}
	}
	for _, h := range w.lines.handles() {
		if l, _ := w.lines.get(h); l.selected {
			lines = append(lines, LineID{h})
		}
	}
	return surfaces, lines
}

// RemoveSelected deletes the selected lines first and then the selected
// surfaces, detaching dependent points as each entity goes away.
func (w *Workspace) RemoveSelected() (surfaces, lines int, err error) {
	ss, ls := w.Selection()
	for _, id := range ls {
		if err := w.RemoveLine(id); err != nil {
			return surfaces, lines, err
		}
		lines++
	}
	for _, id := range ss {
		if err := w.RemoveSurface(id); err != nil {
			return surfaces, lines, err
		}
		surfaces++
	}
	return surfaces, lines, nil
}
