package tmr

// fixupPorts moves the direction of every triplicated module port onto its
// three replicas. Ports that stay single-rail or were reconciled by a
// voter or fanout keep their flags.
func (s *state) fixupPorts() {
	for _, name := range s.origPorts {
		w := s.mod.Wire(name)
		if w == nil || !w.IsPort() {
			continue
		}
		if s.single(w) || s.reconciled[w] {
			continue
		}

		for _, suffix := range suffixes {
			r := s.replica(w, suffix)
			r.PortInput = w.PortInput
			r.PortOutput = w.PortOutput
		}
		w.PortInput = false
		w.PortOutput = false
		s.mod.FixupPorts()

		if !s.hasCandidacy(w) && !s.mod.Used(w) {
			s.remove[w] = true
		} else {
			s.logf("port %s kept as internal wire", w.Name)
		}
	}
}
